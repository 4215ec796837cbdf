// Package highlight turns source code into syntax highlighted HTML.
// It uses the Chroma library to do this work.
//
// Highlighted output keeps every source line
// as its own element so that line numbers can be styled
// independently of the code they label.
package highlight
