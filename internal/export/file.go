package export

import (
	"context"
	"fmt"
	"path/filepath"

	"video-adjustment-tool/internal/core"
	vio "video-adjustment-tool/internal/io"
)

// File exports inPath to outPath at the source's frame rate and frame size.
func File(ctx context.Context, inPath, outPath string, params core.ParameterSet, opts Options) (Result, error) {
	if same, _ := samePath(inPath, outPath); same {
		return Result{}, fmt.Errorf("%w: output would overwrite input %s", vio.ErrUnwritableDestination, inPath)
	}

	src, err := vio.OpenSource(inPath)
	if err != nil {
		return Result{}, err
	}
	defer src.Close()

	sink, err := vio.CreateSink(outPath, opts.FourCC, src.Props())
	if err != nil {
		return Result{}, err
	}

	return Run(ctx, src, sink, params, opts)
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}
