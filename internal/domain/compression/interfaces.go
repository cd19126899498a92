package compression

// Document is a parsed, page-addressable PDF owned by one engine invocation.
type Document interface {
	Name() string
	PageCount() int
}

// DocumentModel is the port to the PDF library. Implementations parse bytes,
// enumerate and copy pages, apply page directives and serialize.
type DocumentModel interface {
	Parse(file SourceFile) (Document, error)
	NewDocument(name string) Document
	PageIndices(doc Document) []int
	CopyPages(dst, src Document, indices []int) error
	ApplyPageDirective(doc Document, pageIndex int, directives DirectiveSet) error
	Serialize(doc Document, directives DirectiveSet) ([]byte, error)
}

// Compressor compresses one file at a fixed level.
type Compressor interface {
	Compress(file SourceFile, level Level, onProgress ProgressFunc) (*OutputPayload, error)
}

// Merger concatenates files into one document.
type Merger interface {
	Merge(files []SourceFile) (*OutputPayload, error)
}
