/*
To write to files in a robust way we should:

- handle error returned by `Close()`

- handle error returned by `Write()`

- remove partially written file if `Write()` or `Close()` returned an error

Package atomicfile makes it easy to get this logic right:

	err := atomicfile.WriteFile(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})

kvextract uses it for -o so that a failed extraction
never leaves a truncated output file.
*/
package atomicfile
