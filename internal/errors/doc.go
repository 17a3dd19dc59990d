// Package errors defines the typed application error used across the
// pipeline. AppError carries a category, a message, an optional cause and
// free-form context such as the dataset or file involved. Causes are
// unwrapped, so sentinel checks like errors.Is(err, os.ErrNotExist) keep
// working through it.
package errors
