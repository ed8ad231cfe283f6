package specbuilder

import (
	"errors"
	"fmt"
	"testing"

	"github.com/onkernel/vmspec/lib/instances"
	"github.com/onkernel/vmspec/lib/instancespec"
	"github.com/onkernel/vmspec/lib/pci"
	"github.com/onkernel/vmspec/lib/serverconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{pci.ErrSlotInvalid, KindAllocation},
		{instancespec.ErrInvalidSerialPort, KindAllocation},
		{instancespec.ErrPCIPathInUse, KindUniqueness},
		{instancespec.ErrSerialPortInUse, KindUniqueness},
		{instancespec.ErrDeviceNameInUse, KindUniqueness},
		{instancespec.ErrBackendNameInUse, KindUniqueness},
		{instancespec.ErrComponentInUse, KindUniqueness},
		{instancespec.ErrBackendMismatch, KindReferential},
		{serverconfig.ErrMissingOption, KindFormat},
		{serverconfig.ErrInvalidOption, KindFormat},
		{instancespec.ErrInvalidComponent, KindFormat},
		{instances.ErrInvalidRequest, KindRequest},
		{instancespec.ErrBuilderFinished, KindRequest},
	}

	for _, tc := range tests {
		t.Run(tc.err.Error(), func(t *testing.T) {
			wrapped := fmt.Errorf("context: %w", tc.err)
			err := classify(wrapped)

			kind, ok := KindOf(err)
			require.True(t, ok)
			assert.Equal(t, tc.want, kind)
			assert.True(t, errors.Is(err, tc.err))
			assert.Equal(t, wrapped.Error(), err.Error())
		})
	}
}

func TestClassify_PassesThrough(t *testing.T) {
	assert.NoError(t, classify(nil))

	original := newError(KindEncoding, "%w: disk d", ErrSerialization)
	assert.Same(t, original, classify(original))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "allocation", KindAllocation.String())
	assert.Equal(t, "request", KindRequest.String())
	assert.Equal(t, "unknown", Kind(0).String())

	_, ok := KindOf(errors.New("plain"))
	assert.False(t, ok)
}
