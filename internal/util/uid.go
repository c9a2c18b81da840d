package util

import (
	"math/big"

	"github.com/google/uuid"
)

// DeterministicUID derives a DICOM UID from name. The UID lives under the
// 2.25 root, which takes the decimal form of a UUID, so the same name
// always yields the same UID.
func DeterministicUID(name string) string {
	u := uuid.NewSHA1(uuid.NameSpaceOID, []byte(name))
	return "2.25." + new(big.Int).SetBytes(u[:]).String()
}
