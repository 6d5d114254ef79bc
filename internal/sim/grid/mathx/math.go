package mathx

func FloorDiv(a, b int) int {
	// b > 0
	q := a / b
	r := a % b
	if r < 0 {
		q--
	}
	return q
}

func AbsInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Chebyshev is the L-inf distance between two grid points. The render window
// and the interact range are both squares, so this is the distance that
// matters everywhere in the grid code.
func Chebyshev(i1, j1, i2, j2 int) int {
	di := AbsInt(i1 - i2)
	dj := AbsInt(j1 - j2)
	if di > dj {
		return di
	}
	return dj
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Hash2 maps (seed, i, j) to a uniform uint64. The exact bit behavior is part
// of the save-compatibility contract: an undecided cell must generate the same
// content on every load, so the mixer constants here are pinned and must not
// change between releases.
func Hash2(seed int64, i, j int) uint64 {
	ui := uint64(uint32(int32(i)))
	uj := uint64(uint32(int32(j)))
	v := uint64(seed) ^ (ui * 0x9e3779b97f4a7c15) ^ (uj * 0xbf58476d1ce4e5b9)
	return mix64(v)
}
