// Package gemini implements screenshot text recognition on top of Google's
// Gemini API. It is the OCR engine behind screenshot verification.
package gemini
