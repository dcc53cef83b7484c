package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grovetools/ausec/errors"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
}

// NewErrorHandler creates a new error handler writing to stderr
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		Out:     os.Stderr,
	}
}

// Handle prints a message and a hint for err based on its code, then
// returns err unchanged.
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}
	w := h.Out
	if w == nil {
		w = os.Stderr
	}

	ae, ok := errors.As(err)
	if !ok {
		fmt.Fprintf(w, "❌ Error: %v\n", err)
		return err
	}

	switch ae.Code {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(w, "❌ Configuration file %v not found\n", ae.Details["path"])
		fmt.Fprintf(w, "Run 'ausec config --schema' to see the accepted format.\n")

	case errors.ErrCodeConfigInvalid, errors.ErrCodeConfigValidation:
		fmt.Fprintf(w, "❌ %s\n", ae.Message)
		if ae.Cause != nil {
			fmt.Fprintf(w, "%v\n", ae.Cause)
		}

	case errors.ErrCodeConnection:
		if _, deep := ae.Details["max_depth"]; deep {
			fmt.Fprintf(w, "❌ Remote tree is deeper than %v levels at %v\n", ae.Details["max_depth"], ae.Details["path"])
			fmt.Fprintf(w, "Raise listing.max_depth or exclude the branch with listing.exclude.\n")
			break
		}
		fmt.Fprintf(w, "❌ Cannot reach the feed server %v\n", ae.Details["addr"])
		fmt.Fprintf(w, "Check server.host in ausec.yml or set AUSEC_FTP_HOST.\n")

	case errors.ErrCodeEmptyListing:
		fmt.Fprintf(w, "❌ The feed server %v lists no files\n", ae.Details["addr"])

	case errors.ErrCodeNoElection:
		fmt.Fprintf(w, "❌ No election found on the feed server\n")

	case errors.ErrCodeAmbiguousElection:
		fmt.Fprintf(w, "❌ The feed server carries more than one election: %s\n", joinDetail(ae.Details["candidates"]))
		fmt.Fprintf(w, "Pick one with --election or the election key in ausec.yml.\n")

	case errors.ErrCodeOverrideNotFound:
		fmt.Fprintf(w, "❌ Election '%v' is not on the feed server\n", ae.Details["override"])
		if c := joinDetail(ae.Details["candidates"]); c != "" {
			fmt.Fprintf(w, "Available elections: %s\n", c)
		}

	case errors.ErrCodeNoMatch:
		fmt.Fprintf(w, "❌ No %v bundle under %v\n", ae.Details["role"], ae.Details["dir"])
		fmt.Fprintf(w, "The election may not have published this feed yet.\n")

	case errors.ErrCodeDownload:
		fmt.Fprintf(w, "❌ Download of %v failed\n", ae.Details["remote_path"])
		if errors.Is(err, errors.ErrCodeConnection) {
			fmt.Fprintf(w, "The feed server could not be reached.\n")
		}

	case errors.ErrCodeMemberNotFound:
		fmt.Fprintf(w, "❌ %v has no member %v\n", ae.Details["archive"], ae.Details["member"])

	case errors.ErrCodeArchiveCorrupt:
		fmt.Fprintf(w, "❌ Cannot read archive %v\n", ae.Details["archive"])
		fmt.Fprintf(w, "Delete the file from the cache directory to fetch it again.\n")

	default:
		fmt.Fprintf(w, "❌ Error: %v\n", err)
	}

	if h.Verbose {
		fmt.Fprintf(w, "\nError details:\n%s\n", ae.ToJSON())
	}
	return err
}

func joinDetail(v interface{}) string {
	switch c := v.(type) {
	case []string:
		return strings.Join(c, ", ")
	case nil:
		return ""
	default:
		return fmt.Sprint(c)
	}
}
