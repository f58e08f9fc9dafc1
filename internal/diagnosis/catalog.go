// Package diagnosis turns a list of reported symptoms into a predicted
// disease and a suggested drug.  The classifier itself is a black box
// behind Predictor; this package only owns the disease-to-drug catalog.
package diagnosis

// NoPrescription is suggested when the predicted disease has no entry in
// the catalog.
const NoPrescription = "No prescription found"

// Entry maps one disease to its suggested drug.
type Entry struct {
	Disease string `json:"disease"`
	Drug    string `json:"drug"`
}

var catalog = []Entry{
	{Disease: "Fungal infection", Drug: "Drug_A"},
	{Disease: "Allergy", Drug: "Drug_B"},
	{Disease: "GERD", Drug: "Drug_C"},
	{Disease: "Chronic cholestasis", Drug: "Drug_D"},
	{Disease: "Drug Reaction", Drug: "Drug_E"},
	{Disease: "Acne", Drug: "Dolo 650"},
}

// Catalog returns a copy of the known disease-to-drug entries.
func Catalog() []Entry {
	out := make([]Entry, len(catalog))
	copy(out, catalog)
	return out
}

// DrugFor returns the suggested drug for disease, or NoPrescription.
func DrugFor(disease string) string {
	for _, e := range catalog {
		if e.Disease == disease {
			return e.Drug
		}
	}
	return NoPrescription
}

// Diseases lists the catalog's disease names in catalog order.
func Diseases() []string {
	out := make([]string, 0, len(catalog))
	for _, e := range catalog {
		out = append(out, e.Disease)
	}
	return out
}
