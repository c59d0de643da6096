package record

import "github.com/julianstephens/go-utils/checksum"

// ComputeChecksum returns the CRC32-C of a frame's type byte and payload,
// which sit contiguously between the length prefix and the trailer.
func ComputeChecksum(typeAndPayload []byte) uint32 {
	return checksum.CRC32C(typeAndPayload)
}

func VerifyChecksum(typeAndPayload []byte, want uint32) bool {
	return checksum.VerifyCRC32C(typeAndPayload, want)
}
