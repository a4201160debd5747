//go:build prismadebug

package grammar

const strictHandles = true
