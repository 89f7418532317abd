package hatchery

// CreateGooseRequest contains the validated fields of a creation request. An
// empty Name is allowed; the goose then gets a random slug.
type CreateGooseRequest struct {
	Name        string
	Description string
	Color       string
	Image       AssetSource
}

func (r CreateGooseRequest) validate() error {
	if r.Image == nil {
		return &ValidationError{Field: "image", Reason: "is required"}
	}
	return nil
}
