package domain

// Region is one of the fixed administrative regions users and reports belong to.
type Region string

// AllRegions lists every administrative region accepted at registration.
var AllRegions = []Region{
	"Abia", "Adamawa", "Akwa Ibom", "Anambra", "Bauchi",
	"Bayelsa", "Benue", "Borno", "Cross River", "Delta",
	"Ebonyi", "Edo", "Ekiti", "Enugu", "Gombe",
	"Imo", "Jigawa", "Kaduna", "Kano", "Katsina",
	"Kebbi", "Kogi", "Kwara", "Lagos", "Nasarawa",
	"Niger", "Ogun", "Ondo", "Osun", "Oyo",
	"Plateau", "Rivers", "Sokoto", "Taraba", "Yobe",
	"Zamfara", "Federal Capital Territory - Abuja",
}

var regionSet = func() map[Region]struct{} {
	set := make(map[Region]struct{}, len(AllRegions))
	for _, r := range AllRegions {
		set[r] = struct{}{}
	}
	return set
}()

// IsValid reports whether the region is part of the fixed enumeration.
func (r Region) IsValid() bool {
	_, ok := regionSet[r]
	return ok
}
