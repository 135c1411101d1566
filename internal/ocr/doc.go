// Package ocr turns the text recognized from a membership screenshot into
// verification evidence: the channel it refers to and the next billing date.
package ocr
