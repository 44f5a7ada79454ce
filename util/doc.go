// Package util holds small generic helpers shared by the config layer.
package util
