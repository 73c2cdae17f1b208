// Code generated by hand for tests. DO NOT EDIT.

package skips

func generated(a int) {}
