// Package process terminates the headless browser started for previews.
package process
