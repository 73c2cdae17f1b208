package basic

func foo(x int, y string) { // want `Parameter 'x' is unused!` `Fixing parameter 'x' in foo`
	println(y)
}

func pair(a, b, c int) int { // want `Parameter 'a' is unused!` `Fixing parameter 'a' in pair` `Parameter 'c' is unused!` `Fixing parameter 'c' in pair`
	return b
}

func group(x, y, z int) int { // want `Parameter 'y' is unused!` `Fixing parameter 'y' in group` `Parameter 'z' is unused!` `Fixing parameter 'z' in group`
	return x
}

func sole(flag bool) { // want `Parameter 'flag' is unused!` `Fixing parameter 'flag' in sole`
}

func used(a int) int {
	return a
}

func ignored(_ int, int2 string) {
	println(int2)
}

func caller() {
	foo(1, "s") // want `Fixing argument index 0 at call site foo`

	println(pair(1, 2, 3)) // want `Fixing argument index 0 at call site pair` `Fixing argument index 2 at call site pair`

	println(group(4, 5, 6)) // want `Fixing argument index 1 at call site group` `Fixing argument index 2 at call site group`

	sole(true) // want `Fixing argument index 0 at call site sole`

	println(used(4))
	ignored(5, "u")
}
