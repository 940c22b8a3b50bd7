// SPDX-License-Identifier: EPL-2.0

package ogg

// Ogg uses CRC-32 with polynomial 0x04c11db7, no reflection and a zero
// initial value, which hash/crc32 cannot express.
var crcTable [256]uint32

func init() {
	for i := range crcTable {
		r := uint32(i) << 24
		for range 8 {
			if r&0x80000000 != 0 {
				r = (r << 1) ^ 0x04c11db7
			} else {
				r <<= 1
			}
		}
		crcTable[i] = r
	}
}

func crcUpdate(crc uint32, data []byte) uint32 {
	for _, b := range data {
		crc = (crc << 8) ^ crcTable[byte(crc>>24)^b]
	}

	return crc
}

// pageChecksum computes the checksum of a raw page, treating the checksum
// field itself as zero.
func pageChecksum(raw []byte) uint32 {
	var zero [4]byte

	crc := crcUpdate(0, raw[:22])
	crc = crcUpdate(crc, zero[:])

	return crcUpdate(crc, raw[26:])
}
