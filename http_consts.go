package muxtree

// MIME types
const (
	MIMETextPlain            = "text/plain"
	MIMETextPlainCharsetUTF8 = MIMETextPlain + "; charset=utf-8"
)

// Headers
const (
	HeaderAllow       = "Allow"
	HeaderContentType = "Content-Type"
	HeaderServer      = "Server"
)
