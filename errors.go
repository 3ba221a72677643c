package ipactivity

import (
	"errors"
	"fmt"

	"github.com/hupe1980/ipactivity/addr"
	"github.com/hupe1980/ipactivity/config"
	"github.com/hupe1980/ipactivity/internal/archive"
	"github.com/hupe1980/ipactivity/matrix"
	"github.com/hupe1980/ipactivity/render"
	"github.com/hupe1980/ipactivity/selection"
	"github.com/hupe1980/ipactivity/store"
	"github.com/hupe1980/ipactivity/timeidx"
)

var (
	// ErrConfigInvalid is returned for a malformed or incomplete configuration.
	ErrConfigInvalid = errors.New("configuration invalid")

	// ErrConfigMissingDataset is returned when the configuration has no
	// entry for the dataset.
	ErrConfigMissingDataset = errors.New("dataset missing from configuration")

	// ErrInvalidRange is returned for an empty, inverted or oversized range.
	ErrInvalidRange = errors.New("invalid range")

	// ErrModeRegression is returned when an offline dataset is reported
	// online again.
	ErrModeRegression = errors.New("mode regression")

	// ErrNoData signals an absent or empty bitmap file. ReadBitmap reports
	// it through Bitmap.NoData instead of returning it.
	ErrNoData = errors.New("no data")

	// ErrStoreIO is returned for unexpected I/O failures while reading.
	ErrStoreIO = errors.New("store i/o failure")

	// ErrSelectionOutOfRange is returned when a selection covers no cell.
	ErrSelectionOutOfRange = errors.New("selection out of range")

	// ErrInvalidGranularity is returned when a granularity exceeds the
	// address width or differs from the dataset's.
	ErrInvalidGranularity = errors.New("invalid granularity")

	// ErrInvalidAddress is returned for an address that cannot be parsed or
	// does not belong to the dataset's family.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidTimestamp is returned for a timestamp in no known layout.
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrInvalidScale is returned for a render scale below 1.
	ErrInvalidScale = errors.New("invalid scale")

	// ErrCanvasTooSmall is returned when the scaled matrix does not fit the
	// canvas.
	ErrCanvasTooSmall = errors.New("canvas too small")

	// ErrOutOfBounds is returned for cell coordinates outside a matrix.
	ErrOutOfBounds = errors.New("out of bounds")

	// ErrInvalidKind is returned for an unknown bitmap kind.
	ErrInvalidKind = errors.New("invalid bitmap kind")
)

// ErrField describes one invalid configuration field.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrField struct {
	Path   string
	Reason string
	cause  error
}

func (e *ErrField) Error() string {
	return fmt.Sprintf("configuration invalid: %s: %s", e.Path, e.Reason)
}

func (e *ErrField) Unwrap() []error { return []error{ErrConfigInvalid, e.cause} }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Configuration.
	var fe *config.FieldError
	if errors.As(err, &fe) {
		return &ErrField{Path: fe.Path, Reason: fe.Reason, cause: err}
	}
	if errors.Is(err, config.ErrMissingDataset) {
		return fmt.Errorf("%w: %w", ErrConfigMissingDataset, err)
	}
	if errors.Is(err, config.ErrModeRegression) {
		return fmt.Errorf("%w: %w", ErrModeRegression, err)
	}
	if errors.Is(err, config.ErrInvalidRange) {
		return fmt.Errorf("%w: %w", ErrInvalidRange, err)
	}
	if errors.Is(err, config.ErrInvalid) {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}

	// Store.
	if errors.Is(err, store.ErrNoData) {
		return fmt.Errorf("%w: %w", ErrNoData, err)
	}
	if errors.Is(err, store.ErrIO) || errors.Is(err, archive.ErrCorrupt) || errors.Is(err, store.ErrInvalidLayout) {
		return fmt.Errorf("%w: %w", ErrStoreIO, err)
	}

	// Coordinates.
	if errors.Is(err, selection.ErrOutOfRange) {
		return fmt.Errorf("%w: %w", ErrSelectionOutOfRange, err)
	}
	if errors.Is(err, addr.ErrInvalidGranularity) {
		return fmt.Errorf("%w: %w", ErrInvalidGranularity, err)
	}
	if errors.Is(err, addr.ErrInvalidAddress) || errors.Is(err, addr.ErrFamilyMismatch) {
		return fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	if errors.Is(err, addr.ErrIndexOverflow) {
		return fmt.Errorf("%w: %w", ErrInvalidRange, err)
	}
	if errors.Is(err, timeidx.ErrInvalidTimestamp) {
		return fmt.Errorf("%w: %w", ErrInvalidTimestamp, err)
	}
	if errors.Is(err, timeidx.ErrInvalidInterval) {
		return fmt.Errorf("%w: %w", ErrInvalidRange, err)
	}
	if errors.Is(err, matrix.ErrOutOfBounds) {
		return fmt.Errorf("%w: %w", ErrOutOfBounds, err)
	}

	// Rendering.
	if errors.Is(err, render.ErrInvalidScale) {
		return fmt.Errorf("%w: %w", ErrInvalidScale, err)
	}
	if errors.Is(err, render.ErrCanvasTooSmall) {
		return fmt.Errorf("%w: %w", ErrCanvasTooSmall, err)
	}

	return err
}
