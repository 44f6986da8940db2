package compress

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/savio/format"
)

// caseBlock builds a block of fixed-width case records: one double and a
// space-padded 8-byte string per case.
func caseBlock(cases int) []byte {
	buf := make([]byte, 0, cases*16)
	for i := range cases {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(float64(i%50)))
		name := []byte("case    ")
		name[4] = byte('0' + i%10)
		buf = append(buf, name...)
	}

	return buf
}

func allAlgorithms() []Algorithm {
	return []Algorithm{AlgorithmNone, AlgorithmS2, AlgorithmLZ4, AlgorithmZstd}
}

func TestCodecRoundTrip(t *testing.T) {
	inputs := map[string][]byte{
		"small":  []byte("Ann       Bob       "),
		"block":  caseBlock(1000),
		"single": {0x42},
	}

	for _, alg := range allAlgorithms() {
		codec, err := CreateCodec(alg, "test")
		require.NoError(t, err)

		for name, data := range inputs {
			t.Run(alg.String()+"/"+name, func(t *testing.T) {
				compressed, err := codec.Compress(data)
				require.NoError(t, err)

				restored, err := codec.Decompress(compressed)
				require.NoError(t, err)
				require.True(t, bytes.Equal(data, restored))
			})
		}
	}
}

func TestCodecEmptyInput(t *testing.T) {
	for _, alg := range []Algorithm{AlgorithmS2, AlgorithmLZ4, AlgorithmZstd} {
		t.Run(alg.String(), func(t *testing.T) {
			codec, err := GetCodec(alg)
			require.NoError(t, err)

			out, err := codec.Compress(nil)
			require.NoError(t, err)
			require.Empty(t, out)

			out, err = codec.Decompress(nil)
			require.NoError(t, err)
			require.Empty(t, out)
		})
	}
}

func TestCodecCompressesCaseBlocks(t *testing.T) {
	data := caseBlock(4096)

	for _, alg := range []Algorithm{AlgorithmS2, AlgorithmLZ4, AlgorithmZstd} {
		t.Run(alg.String(), func(t *testing.T) {
			codec, err := GetCodec(alg)
			require.NoError(t, err)

			compressed, err := codec.Compress(data)
			require.NoError(t, err)
			require.Less(t, len(compressed), len(data))
		})
	}
}

func TestCodecCorruptedInput(t *testing.T) {
	garbage := []byte{0xff, 0xfe, 0xfd, 0xfc, 0x00, 0x01, 0x02}

	for _, alg := range []Algorithm{AlgorithmS2, AlgorithmZstd} {
		t.Run(alg.String(), func(t *testing.T) {
			codec, err := GetCodec(alg)
			require.NoError(t, err)

			_, err = codec.Decompress(garbage)
			require.Error(t, err)
		})
	}
}

func TestNoOpSharesMemory(t *testing.T) {
	data := []byte("abc")
	out, err := NewNoOpCompressor().Compress(data)
	require.NoError(t, err)
	require.Same(t, &data[0], &out[0])
}

func TestForSwitch(t *testing.T) {
	tests := []struct {
		name     string
		sw       format.Compression
		standard Algorithm
		want     Algorithm
		wantErr  bool
	}{
		{name: "none", sw: format.CompressionNone, standard: AlgorithmS2, want: AlgorithmNone},
		{name: "standard s2", sw: format.CompressionStandard, standard: AlgorithmS2, want: AlgorithmS2},
		{name: "standard lz4", sw: format.CompressionStandard, standard: AlgorithmLZ4, want: AlgorithmLZ4},
		{name: "standard zstd rejected", sw: format.CompressionStandard, standard: AlgorithmZstd, wantErr: true},
		{name: "zlib", sw: format.CompressionZLib, standard: AlgorithmLZ4, want: AlgorithmZstd},
		{name: "unknown switch", sw: format.Compression(7), standard: AlgorithmS2, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ForSwitch(tt.sw, tt.standard)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestCreateCodecInvalid(t *testing.T) {
	_, err := CreateCodec(Algorithm(99), "block")
	require.ErrorContains(t, err, "invalid block compression")

	_, err = GetCodec(Algorithm(99))
	require.Error(t, err)
	require.Equal(t, "unknown", Algorithm(99).String())
}

func TestCodecConcurrentUse(t *testing.T) {
	data := caseBlock(512)

	for _, alg := range []Algorithm{AlgorithmLZ4, AlgorithmZstd} {
		codec, err := GetCodec(alg)
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make(chan error, 8)
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				compressed, err := codec.Compress(data)
				if err != nil {
					errs <- err
					return
				}
				restored, err := codec.Decompress(compressed)
				if err != nil {
					errs <- err
					return
				}
				if !bytes.Equal(restored, data) {
					errs <- errors.New("round trip mismatch")
				}
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}
	}
}

func BenchmarkCodecCompress(b *testing.B) {
	data := caseBlock(4096)

	for _, alg := range allAlgorithms() {
		codec, _ := GetCodec(alg)
		b.Run(alg.String(), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			for b.Loop() {
				_, _ = codec.Compress(data)
			}
		})
	}
}
