package palette

import "testing"

func TestStandardColorsPreserved(t *testing.T) {
	p := Build()
	if p.At(1) != 0xCD0000 {
		t.Fatalf("palette[1] (red) = %06X, want CD0000", p.At(1))
	}
	if p.At(15) != 0xFFFFFF {
		t.Fatalf("palette[15] (bright white) = %06X, want FFFFFF", p.At(15))
	}
}

func TestCube(t *testing.T) {
	p := Build()
	// index 16 is r=0,g=0,b=0 -> black
	if p.At(16) != 0x000000 {
		t.Fatalf("palette[16] = %06X, want 000000", p.At(16))
	}
	// index 231 is r=5,g=5,b=5 -> 255,255,255
	if p.At(231) != 0xFFFFFF {
		t.Fatalf("palette[231] = %06X, want FFFFFF", p.At(231))
	}
	// index 16 + 1*36 + 2*6 + 3 = 16+36+12+3 = 67 -> r=1,g=2,b=3
	idx := 16 + 1*36 + 2*6 + 3
	want := Color((cubeSteps[1] << 16) | (cubeSteps[2] << 8) | cubeSteps[3])
	if p.At(idx) != want {
		t.Fatalf("palette[%d] = %06X, want %06X", idx, p.At(idx), want)
	}
}

func TestGrayscale(t *testing.T) {
	p := Build()
	if p.At(232) != 0x080808 {
		t.Fatalf("palette[232] = %06X, want 080808", p.At(232))
	}
	if p.At(255) != 0xEEEEEE {
		t.Fatalf("palette[255] = %06X, want EEEEEE", p.At(255))
	}
}

func TestOutOfRangeFallsBackToDefaultForeground(t *testing.T) {
	p := Build()
	if p.At(-1) != DefaultForeground {
		t.Fatalf("expected DefaultForeground for negative index")
	}
	if p.At(256) != DefaultForeground {
		t.Fatalf("expected DefaultForeground for index 256")
	}
}
