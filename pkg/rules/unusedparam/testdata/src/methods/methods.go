package methods

type T struct{}

func (t T) m(a int, s string) string { // want `Parameter 'a' is unused!` `Fixing parameter 'a' in m`
	return s
}

type P struct{ n int }

func (p *P) set(n, scale int) { // want `Parameter 'scale' is unused!` `Fixing parameter 'scale' in set`
	p.n = n
}

func use() {
	var t T
	_ = t.m(1, "x") // want `Fixing argument index 0 at call site m`

	_ = T.m(t, 2, "y") // want `Fixing argument index 0 at call site m`

	p := &P{}
	p.set(1, 10) // want `Fixing argument index 1 at call site set`

	(*P).set(p, 2, 20) // want `Fixing argument index 1 at call site set`
}
