package harness

import (
	"context"
	"fmt"

	"github.com/roach88/inkdc/internal/decompiler"
	"github.com/roach88/inkdc/internal/ir"
	"github.com/roach88/inkdc/internal/render"
	"github.com/roach88/inkdc/internal/story"
)

// Decompile loads a compiled story document and renders it as source.
// The decompiled tree is returned alongside the text.
func Decompile(ctx context.Context, data []byte) (*ir.Story, string, error) {
	s, err := story.Load(data)
	if err != nil {
		return nil, "", err
	}
	tree, err := decompiler.Decompile(ctx, s)
	if err != nil {
		return nil, "", err
	}
	return tree, render.Story(tree), nil
}

// safeDecompile is Decompile with panics turned into errors.
func safeDecompile(ctx context.Context, data []byte) (tree *ir.Story, source string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return Decompile(ctx, data)
}
