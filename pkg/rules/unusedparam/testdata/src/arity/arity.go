package arity

func v(format string, args ...any) { // want `Parameter 'format' is unused!` `Fixing parameter 'format' in v`
	println(len(args))
}

func w(a int, rest ...string) int { // want `Parameter 'rest' is unused!` `Fixing parameter 'rest' in w`
	return a
}

func two() (int, int) { return 1, 2 }

func pair(x, y int) int { // want `Parameter 'y' is unused!`
	return x
}

func use(xs []any) {
	v("a", 1, 2) // want `Fixing argument index 0 at call site v`

	v("b") // want `Fixing argument index 0 at call site v`

	v("c", xs...) // want `Fixing argument index 0 at call site v`

	_ = w(1, "x", "y") // want `Fixing argument index 1 at call site w`

	_ = w(2)

	_ = pair(two())
}
