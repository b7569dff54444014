//go:build !rtmidi

package main

const midiDriver = ""
