package errors

import (
	"strings"
	"unicode"
)

// MaxBoardSide is the largest board dimension accepted. The packed format
// stores board sizes and piece coordinates in a single byte.
const MaxBoardSide = 255

// ValidateBoard checks board dimensions before any search begins.
func ValidateBoard(width, height int) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidBoard, "board dimensions must be positive, got %dx%d", width, height)
	}
	if width > MaxBoardSide || height > MaxBoardSide {
		return New(ErrCodeInvalidBoard, "board dimensions must not exceed %d, got %dx%d", MaxBoardSide, width, height)
	}
	return nil
}

// ValidatePieceGeometry checks the construction-time invariants of a piece:
// a non-negative id and strictly positive size.
func ValidatePieceGeometry(id, width, height int) error {
	if id < 0 {
		return New(ErrCodeInvalidPiece, "piece id must be non-negative, got %d", id)
	}
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidPiece, "piece %d: size must be positive, got %dx%d", id, width, height)
	}
	return nil
}

const (
	maxNameLength = 64
	maxPathLength = 500
)

// ValidatePuzzleName checks a preset or puzzle-file name, which ends up in
// file names and cache keys. It must be non-empty, at most 64 bytes long
// and free of control characters.
func ValidatePuzzleName(name string) error {
	switch {
	case name == "":
		return New(ErrCodeInvalidPuzzle, "puzzle name cannot be empty")
	case len(name) > maxNameLength:
		return New(ErrCodeInvalidPuzzle, "puzzle name too long (max %d characters)", maxNameLength)
	case hasControl(name):
		return New(ErrCodeInvalidPuzzle, "puzzle name %q contains control characters", name)
	}
	return nil
}

// ValidateOutputPath checks a path given with -o before any work is done.
func ValidateOutputPath(path string) error {
	switch {
	case strings.TrimSpace(path) == "":
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	case len(path) > maxPathLength:
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	case hasControl(path):
		return New(ErrCodeInvalidPath, "path contains invalid characters")
	}
	return nil
}

func hasControl(s string) bool {
	return strings.IndexFunc(s, unicode.IsControl) >= 0
}
