package utils

import "hash/crc32"

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Checksum return the crc32 (Castagnoli) of a snapshot payload
func Checksum(data []byte) uint32 {
	return crc32.Checksum(data, castagnoli)
}

// VerifyChecksum report whether data still matches sum
func VerifyChecksum(sum uint32, data []byte) bool {
	return Checksum(data) == sum
}
