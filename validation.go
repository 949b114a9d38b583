package trident

// Validatable is implemented by input structs that need custom business
// validation beyond the schema. Validate runs after schema validation and
// unmarshaling; a returned error fails the call as ValidationError.
type Validatable interface {
	Validate() error
}

// validateCustom runs Layer 2 (Validatable) if args implements it.
func validateCustom(args any) error {
	if v, ok := args.(Validatable); ok {
		return v.Validate()
	}
	return nil
}
