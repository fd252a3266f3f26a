package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eivy/irgen/raw"
)

// necBytes reads the four data bytes back from an encoded NEC frame.
func necBytes(t *testing.T, s raw.Signal) [4]int {
	t.Helper()
	require.Len(t, s, 2+32*2+2)

	var bytes [4]int
	for i := range 32 {
		mark, space := s[2+2*i], s[3+2*i]
		require.Equal(t, 562.5, mark)
		switch space {
		case -1687.5:
			bytes[i/8] |= 1 << (i % 8)
		case -562.5:
		default:
			t.Fatalf("unexpected space %v at bit %d", space, i)
		}
	}
	return bytes
}

func TestNECFrame(t *testing.T) {
	s, err := Encode(Protocol{Family: NEC1}, Params{Device: 4, Subdevice: -1, Function: 8})
	require.NoError(t, err)

	assert.Equal(t, raw.Signal{9000, -4500}, s[:2])
	assert.Equal(t, raw.Signal{562.5, -1687.5}, s[len(s)-2:])
	assert.Equal(t, [4]int{4, 0xFB, 8, 0xF7}, necBytes(t, s))
}

func TestNECShortLeader(t *testing.T) {
	for _, f := range []Family{NEC2, NECX2} {
		s, err := Encode(Protocol{Family: f}, Params{Device: 1, Subdevice: 2, Function: 3})
		require.NoError(t, err)
		assert.Equal(t, raw.Signal{4500, -4500}, s[:2], f.String())
		assert.Equal(t, [4]int{1, 2, 3, 0xFC}, necBytes(t, s))
	}
}

func TestNECSuffix(t *testing.T) {
	tests := []struct {
		suffix Suffix
		params Params
		want   [4]int
	}{
		{suffix: SuffixY1, params: Params{Device: 0x7A, Subdevice: -1, Function: 0x10}, want: [4]int{0x7A, 0x85, 0x10, 0x6F}},
		{suffix: SuffixY2, params: Params{Device: 0x7A, Subdevice: -1, Function: 0x10}, want: [4]int{0x7A, 0x85, 0x10, 0xEE}},
		{suffix: SuffixY3, params: Params{Device: 0x7A, Subdevice: -1, Function: 0x10}, want: [4]int{0x7A, 0x85, 0x10, 0x6E}},
		{suffix: SuffixF16, params: Params{Device: 0x10, Subdevice: 0x20, Function: 0xABCD}, want: [4]int{0x10, 0x20, 0xCD, 0xAB}},
	}

	for _, tt := range tests {
		p := Protocol{Family: NECX1, Suffix: tt.suffix}
		s, err := Encode(p, tt.params)
		require.NoError(t, err, p.String())
		assert.Equal(t, tt.want, necBytes(t, s), p.String())
	}
}

func TestNECRange(t *testing.T) {
	var domainErr *raw.DomainError
	for _, tt := range []struct {
		proto  Protocol
		params Params
	}{
		{proto: Protocol{Family: NEC1}, params: Params{Device: 256, Subdevice: -1}},
		{proto: Protocol{Family: NEC1}, params: Params{Device: 1, Subdevice: 256}},
		{proto: Protocol{Family: NEC1}, params: Params{Device: 1, Subdevice: -1, Function: 256}},
		{proto: Protocol{Family: NEC2, Suffix: SuffixF16}, params: Params{Device: 1, Subdevice: -1, Function: 0x10000}},
	} {
		_, err := Encode(tt.proto, tt.params)
		assert.ErrorAs(t, err, &domainErr, "%s %+v", tt.proto, tt.params)
	}
}
