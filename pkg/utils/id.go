package utils

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

const (
	RoomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	RoomCodeLength   = 6
)

// GenRoomCode returns a 6 character code drawn uniformly from RoomCodeAlphabet.
func GenRoomCode() string {
	b := make([]byte, RoomCodeLength)
	max := big.NewInt(int64(len(RoomCodeAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return ""
		}
		b[i] = RoomCodeAlphabet[n.Int64()]
	}
	return string(b)
}

// GenPlayerID generates a random id that stays stable for the player across reconnects.
func GenPlayerID() string {
	return uuid.NewString()
}
