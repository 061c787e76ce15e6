package protobind

import (
	"errors"
	"io"

	eng "github.com/reoring/protobind/internal/engine"
)

// DetectDuplicateKeysBytes scans a JSON byte slice and reports duplicate
// object keys without binding anything. Use it when the last-write-wins
// merge default is not wanted and inputs must be vetted up front.
// maxIssues < 0 means unlimited; 0 disables collection; > 0 caps it. Under
// Error strictness the first duplicate is always returned, both in the issue
// list and as the error, regardless of the cap.
func DetectDuplicateKeysBytes(data []byte, strict Strictness, maxIssues int) (Issues, error) {
	return detectDuplicates(JSONBytes(data), strict, maxIssues)
}

// DetectDuplicateKeysReader is DetectDuplicateKeysBytes for an io.Reader.
// The reader is consumed fully.
func DetectDuplicateKeysReader(r io.Reader, strict Strictness, maxIssues int) (Issues, error) {
	return detectDuplicates(JSONReader(r), strict, maxIssues)
}

func detectDuplicates(src Source, strict Strictness, maxIssues int) (Issues, error) {
	if strict.OnDuplicateKey == Ignore {
		return nil, nil
	}
	var iss Issues
	full := false
	collect := func(si eng.SimpleIssue) {
		if maxIssues == 0 || full {
			return
		}
		iss = AppendIssues(iss, Issue{Code: si.Code, Path: si.Path, Message: si.Message, Offset: -1})
		if maxIssues > 0 && len(iss) >= maxIssues {
			iss = AppendIssues(iss, Issue{Code: CodeTruncated, Path: "/", Message: "max issues reached", Offset: -1})
			full = true
		}
	}

	mode := eng.DupWarn
	if strict.OnDuplicateKey == Error {
		mode = eng.DupError
	}
	enforced := eng.WrapWithEnforcement(engineTokenSource(src), eng.EnforceOptions{
		OnDuplicate: mode,
		IssueSink:   collect,
	})
	for {
		_, err := enforced.NextToken()
		if err == io.EOF {
			return iss, nil
		}
		if err != nil {
			var ie eng.IssueError
			if errors.As(err, &ie) {
				// Error mode stops at the first duplicate. The fatal issue
				// bypasses the maxIssues cap; the strictest mode never
				// reports a clean scan over duplicated input.
				fatal := Issue{Code: ie.Code, Path: ie.Path, Message: ie.Message, Offset: -1}
				iss = AppendIssues(iss, fatal)
				return iss, AppendIssues(nil, fatal)
			}
			return iss, toIssues(err)
		}
		if full {
			return iss, nil
		}
	}
}
