// Package ocr turns cropped page regions into text.
//
// The segmentation pipeline depends only on the Recognizer interface. The
// Tesseract implementation wraps the Tesseract engine through gosseract/v2;
// tests and alternative engines can supply a RecognizerFunc instead.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// # Output
//
// Recognized text is passed through CleanText: lines containing only
// whitespace are dropped and the result is trimmed, so a region with no
// legible text yields the empty string rather than an error.
//
// # Temporary Files
//
// Tesseract reads its input from disk. Each Recognize call writes its own
// uniquely named PNG and removes it when the engine is done, including when
// the call fails or times out.
//
// # Timeouts
//
// Tesseract.Timeout bounds a single call. On expiry Recognize returns an
// error wrapping context.DeadlineExceeded; callers treat this like any other
// failed block.
package ocr
