package chat

// User-facing replies.
const (
	MsgWelcome        = "Welcome! Please enter your query."
	MsgEmptyQuery     = "Query cannot be empty!"
	MsgReportReady    = "Report generated. Click below to download the PDF."
	MsgNoPDF          = "No data available to generate a PDF report."
	MsgNoReport       = "No report data found. Please run a query first."
	MsgHereIsPDF      = "Here is your PDF report:"
	prefixError       = "An error occurred: "
	prefixPDFError    = "Error generating PDF: "
	prefixRejected    = "Query rejected: "
	prefixUnknownVerb = "Unknown action: "
)

// ActionDownloadPDF exports the cached result as a PDF.
const ActionDownloadPDF = "download_pdf"

// RoleAssistant marks replies produced by the adapter.
const RoleAssistant = "assistant"

// Action is a button offered alongside a message.
type Action struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// File is an attachment. Content is base64 in JSON.
type File struct {
	Name    string `json:"name"`
	MIME    string `json:"mime"`
	Content []byte `json:"content"`
}

// Message is one reply sent back to the chat.
type Message struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Actions []Action `json:"actions,omitempty"`
	Files   []File   `json:"files,omitempty"`
}

func say(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}
