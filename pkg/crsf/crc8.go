package crsf

// CRCPoly is the CRC8 polynomial used by the link.
const CRCPoly byte = 0xd5

var crc8Table = makeCRC8Table(CRCPoly)

func makeCRC8Table(poly byte) (tbl [256]byte) {
	for i := range tbl {
		crc := byte(i)
		for bit := 0; bit < 8; bit++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		tbl[i] = crc
	}
	return
}

// Checksum computes CRC8 over all bytes of the slices, in order.
func Checksum(data ...[]byte) byte {
	var crc byte
	for _, b := range data {
		crc = UpdateChecksum(crc, b)
	}
	return crc
}

// UpdateChecksum continues a CRC8 computation.
func UpdateChecksum(crc byte, data []byte) byte {
	for _, b := range data {
		crc = crc8Table[crc^b]
	}
	return crc
}
