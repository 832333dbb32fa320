//go:build darwin && !ios

package ime

/*
#cgo LDFLAGS: -framework Carbon -framework CoreFoundation

#include <Carbon/Carbon.h>
#include <stdlib.h>

// Copies the identifier of the current keyboard input source into a malloc'd
// UTF-8 string. Returns NULL when the source or its identifier is missing.
// A source without the select-capable property counts as selectable.
static char *imesyncCurrentSource(int *selectable) {
	TISInputSourceRef src = TISCopyCurrentKeyboardInputSource();
	if (src == NULL) {
		return NULL;
	}

	*selectable = 1;
	CFBooleanRef capable = (CFBooleanRef)TISGetInputSourceProperty(src, kTISPropertyInputSourceIsSelectCapable);
	if (capable != NULL) {
		*selectable = CFBooleanGetValue(capable) ? 1 : 0;
	}

	char *out = NULL;
	CFStringRef sid = (CFStringRef)TISGetInputSourceProperty(src, kTISPropertyInputSourceID);
	if (sid != NULL) {
		CFIndex size = CFStringGetMaximumSizeForEncoding(CFStringGetLength(sid), kCFStringEncodingUTF8) + 1;
		out = malloc(size);
		if (out != NULL && !CFStringGetCString(sid, out, size, kCFStringEncodingUTF8)) {
			free(out);
			out = NULL;
		}
	}

	CFRelease(src);
	return out;
}

// Selects the input source with the given identifier. Returns 1 on success.
static int imesyncSelectSource(const char *id) {
	CFStringRef sid = CFStringCreateWithCString(kCFAllocatorDefault, id, kCFStringEncodingUTF8);
	if (sid == NULL) {
		return 0;
	}

	const void *keys[] = { kTISPropertyInputSourceID };
	const void *values[] = { sid };
	CFDictionaryRef filter = CFDictionaryCreate(kCFAllocatorDefault, keys, values, 1,
		&kCFTypeDictionaryKeyCallBacks, &kCFTypeDictionaryValueCallBacks);
	CFRelease(sid);
	if (filter == NULL) {
		return 0;
	}

	CFArrayRef sources = TISCreateInputSourceList(filter, false);
	CFRelease(filter);
	if (sources == NULL) {
		return 0;
	}

	int ok = 0;
	if (CFArrayGetCount(sources) > 0) {
		TISInputSourceRef src = (TISInputSourceRef)CFArrayGetValueAtIndex(sources, 0);
		ok = TISSelectInputSource(src) == noErr;
	}
	CFRelease(sources);
	return ok;
}
*/
import "C"

import (
	"log/slog"
	"unsafe"
)

// tisRegistry reads and selects input sources through Text Input Sources
// Services.
type tisRegistry struct{}

func (tisRegistry) Current() (InputSource, bool) {
	var selectable C.int
	cid := C.imesyncCurrentSource(&selectable)
	if cid == nil {
		return InputSource{}, false
	}
	defer C.free(unsafe.Pointer(cid))
	return InputSource{ID: C.GoString(cid), Selectable: selectable != 0}, true
}

func (tisRegistry) Select(id string) bool {
	cid := C.CString(id)
	defer C.free(unsafe.Pointer(cid))
	return C.imesyncSelectSource(cid) != 0
}

func newPlatformManager(cfg Config, logger *slog.Logger) (Manager, error) {
	return newInputSourceManager(tisRegistry{}, cfg, logger), nil
}
