// Package common holds argument extraction helpers and the instrumented
// handler wrapper shared by all tool packages.
package common
