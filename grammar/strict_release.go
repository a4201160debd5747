//go:build !prismadebug

package grammar

// strictHandles turns unresolvable handles into panics. Release builds
// resolve them to an empty result instead.
const strictHandles = false
