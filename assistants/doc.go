// Package assistants implements the tool-calling loop that turns a language model and a set of tools into a working agent.
package assistants
