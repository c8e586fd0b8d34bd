// Package crsf provides the wire codec of the CRSF serial link.
package crsf

// A frame on the wire is
//
//	address, frame_size, type, payload..., crc
//
// where frame_size counts type, payload and crc (payload length + 2) and crc
// is CRC8 (poly 0xD5) over type and payload. Channel frames pack sixteen
// 11-bit values little-endian; every other payload is big-endian with fixed
// offsets.
