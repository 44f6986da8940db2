package fileengine

const (
	// Bit masks of the header options field.
	EndiannessMask  = 0x0002 // Mask for endianness bit (bit 1)
	MagicNumberMask = 0xFFF0 // Mask for magic number (bits 4-15)

	// MagicV1Opt is the version 1 magic number in the options field.
	MagicV1Opt = 0x5A70

	FormatVersion = 1
)

const (
	HeaderSize      = 32 // fixed file header size in bytes
	BlockHeaderSize = 24 // fixed case block header size in bytes

	// DefaultBlockCases is the number of cases per block unless configured.
	DefaultBlockCases = 4096
)
