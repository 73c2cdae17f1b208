package generics

type Box[T any] struct{ v T }

func (b *Box[T]) Put(v T, note string) { // want `Parameter 'note' is unused!` `Fixing parameter 'note' in Put`
	b.v = v
}

func Map[T, U any](xs []T, f func(T) U, hint int) []U { // want `Parameter 'hint' is unused!` `Fixing parameter 'hint' in Map`
	out := make([]U, 0, len(xs))
	for _, x := range xs {
		out = append(out, f(x))
	}
	return out
}

func use() {
	b := &Box[int]{}
	b.Put(1, "one") // want `Fixing argument index 1 at call site Put`

	_ = Map([]int{1}, func(i int) string { return "" }, 3) // want `Fixing argument index 2 at call site Map`

	_ = Map[int, string]([]int{2}, func(i int) string { return "" }, 4) // want `Fixing argument index 2 at call site Map`
}
