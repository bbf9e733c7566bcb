// internal/filters/metadata.go
package filters

import (
	"fmt"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// tokenMetadata is the prefix of the metaplex metadata account we care about.
type tokenMetadata struct {
	UpdateAuthority solana.PublicKey
	Mint            solana.PublicKey
	Name            string
	Symbol          string
	URI             string
}

// decodeTokenMetadata reads key, update authority, mint and the three
// length-prefixed strings. Metaplex pads strings with NUL bytes.
func decodeTokenMetadata(data []byte) (*tokenMetadata, error) {
	dec := bin.NewBinDecoder(data)

	if _, err := dec.ReadUint8(); err != nil {
		return nil, fmt.Errorf("failed to read metadata key: %w", err)
	}

	meta := &tokenMetadata{}
	for _, dst := range []*solana.PublicKey{&meta.UpdateAuthority, &meta.Mint} {
		raw, err := dec.ReadNBytes(32)
		if err != nil {
			return nil, fmt.Errorf("failed to read metadata pubkey: %w", err)
		}
		*dst = solana.PublicKeyFromBytes(raw)
	}

	for _, dst := range []*string{&meta.Name, &meta.Symbol, &meta.URI} {
		length, err := dec.ReadUint32(bin.LE)
		if err != nil {
			return nil, fmt.Errorf("failed to read metadata string length: %w", err)
		}
		raw, err := dec.ReadNBytes(int(length))
		if err != nil {
			return nil, fmt.Errorf("failed to read metadata string: %w", err)
		}
		*dst = strings.TrimRight(string(raw), "\x00")
	}

	return meta, nil
}
