package skips

func Exported(a int) {}

func local(a int) {} // want `Parameter 'a' is unused!` `Fixing parameter 'a' in local`

func callback(a int) {}

var hook = callback

type Labeller interface{ Label(n int) string }

type item struct{}

func (item) Label(n int) string { return "item" }

var _ Labeller = item{}
