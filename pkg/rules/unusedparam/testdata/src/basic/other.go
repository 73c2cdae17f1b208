package basic

func elsewhere() {
	foo(2, "t") // want `Fixing argument index 0 at call site foo`
}
