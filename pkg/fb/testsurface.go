package fb

import "encoding/binary"

// NewTestSurface builds an in-memory Surface backed by a plain byte
// slice instead of a real /dev/fb0 mapping, for use by this package's
// and other packages' tests — the mmap'd region and the in-memory one
// have identical layout, so PutPixel/BlendPixel/Clear exercise the same
// code path a real device would.
func NewTestSurface(w, h int) *Surface {
	stride := w * 4
	return &Surface{
		mem:    make([]byte, stride*h),
		Width:  w,
		Height: h,
		stride: stride,
		bpp:    32,
	}
}

// PixelAt reads back the raw XRGB value written at (x, y). Test-only
// helper; real callers never need to read the framebuffer back.
func (s *Surface) PixelAt(x, y int) uint32 {
	off := y*s.stride + x*4
	return binary.LittleEndian.Uint32(s.mem[off : off+4])
}
