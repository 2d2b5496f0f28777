package story

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

// headerSchema constrains the top level of a compiled story document.
const headerSchema = `
inkVersion!: int & >=19 & <=21
root!: [...]
listDefs?: {...}
`

// ValidateHeader checks the top-level shape of a compiled story document.
// The document is compiled as CUE (JSON is valid CUE) and unified with the
// header schema; content below root is left to the loader.
func ValidateHeader(data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(headerSchema, cue.Filename("header.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile header schema: %w", err)
	}

	doc := ctx.CompileBytes(data, cue.Filename("story.json"))
	if err := doc.Err(); err != nil {
		return &LoadError{Code: ErrCodeSyntax, Message: "story is not valid JSON", Err: err}
	}

	v := schema.Unify(doc)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return &LoadError{Code: ErrCodeHeader, Message: firstError(err)}
	}
	return nil
}

// firstError returns the message of the first error in a CUE error list.
func firstError(err error) string {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err.Error()
	}
	return errs[0].Error()
}
