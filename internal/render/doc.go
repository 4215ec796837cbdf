// Package render turns composed HTML documents into PNG images
// using a headless browser.
//
// An [Engine] drives a [Browser] through a fixed sequence:
// acquire a fresh [Surface], load the document,
// measure the content element, capture exactly that element,
// and release the surface.
// [Chrome] is the production [Browser].
package render
