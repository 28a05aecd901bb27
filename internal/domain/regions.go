package domain

// CanonicalRegions is the fixed reference set of standardized region names,
// lowercase and space-separated. Matching against noisy source feeds happens
// in the ingest package; this list is the only accepted output vocabulary.
var CanonicalRegions = []string{
	"andaman and nicobar islands", "andhra pradesh", "arunachal pradesh", "assam", "bihar",
	"chandigarh", "chhattisgarh", "dadra and nagar haveli and daman and diu", "delhi", "goa",
	"gujarat", "haryana", "himachal pradesh", "jammu and kashmir", "jharkhand", "karnataka",
	"kerala", "ladakh", "lakshadweep", "madhya pradesh", "maharashtra", "manipur", "meghalaya",
	"mizoram", "nagaland", "odisha", "puducherry", "punjab", "rajasthan", "sikkim", "tamil nadu",
	"telangana", "tripura", "uttar pradesh", "uttarakhand", "west bengal",
}

// IsCanonicalRegion reports whether name is already in the reference set.
func IsCanonicalRegion(name string) bool {
	for _, r := range CanonicalRegions {
		if r == name {
			return true
		}
	}
	return false
}
