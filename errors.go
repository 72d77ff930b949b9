package webpanim

import (
	"errors"

	"github.com/daanv2/go-webpanim/pkg/canvas"
)

var (
	ErrNotContainerFormat   = errors.New("webpanim: not a RIFF/WEBP container")
	ErrFeatureProbeFailed   = errors.New("webpanim: could not read the animation features")
	ErrFragmentDecodeFailed = errors.New("webpanim: frame could not be decoded")
	ErrDimensionMismatch    = canvas.ErrDimensionMismatch
)
