// Package signerpool holds one chain signing key per worker. Each worker
// owns its keyring pair for its entire lifetime so that nonce tracking for
// that key never has to be shared or locked across goroutines — the
// substrate RPC client's nonce stream is only safe when exactly one caller
// advances it.
package signerpool

import (
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
)

// Pool is a fixed-size, index-addressed set of signing keys. Index i belongs
// to worker i for the life of the process; the supervisor never reassigns a
// key to a different worker slot, even across a respawn.
type Pool struct {
	signers []signature.KeyringPair
}

// New builds a pool from hex-encoded private keys, one per worker; the number
// of keys sets the worker count (see Size). An empty key list or a key that
// does not parse is a startup-time configuration error, not something
// workers should discover at runtime.
func New(hexPrivateKeys []string) (*Pool, error) {
	if len(hexPrivateKeys) == 0 {
		return nil, fmt.Errorf("signerpool: no private keys configured")
	}

	signers := make([]signature.KeyringPair, len(hexPrivateKeys))
	for i, hexKey := range hexPrivateKeys {
		kp, err := signature.KeyringPairFromSecret(hexKey, 42)
		if err != nil {
			return nil, fmt.Errorf("signerpool: key %d: %w", i, err)
		}
		signers[i] = kp
	}

	return &Pool{signers: signers}, nil
}

// Size returns the number of configured signers, which drives how many
// workers the supervisor spawns.
func (p *Pool) Size() int { return len(p.signers) }

// SignerFor returns the keyring pair owned by workerIndex. Panics on an
// out-of-range index since that is always a supervisor wiring bug, never
// recoverable input.
func (p *Pool) SignerFor(workerIndex int) signature.KeyringPair {
	if workerIndex < 0 || workerIndex >= len(p.signers) {
		panic(fmt.Sprintf("signerpool: worker index %d out of range [0,%d)", workerIndex, len(p.signers)))
	}
	return p.signers[workerIndex]
}

// Address returns the SS58 address for workerIndex's signer, for logging and
// the admin CLI's signer-inventory command.
func (p *Pool) Address(workerIndex int) string {
	return p.SignerFor(workerIndex).Address
}
