package sharing

import "errors"

var ErrClipboardUnavailable = errors.New("clipboard is not available, copy the link manually")
