// Package client implements the canvas-side synchronization logic: a local
// stroke list kept approximately consistent with the server.
//
// The package implements:
//   - Board: the ordered local view of strokes, with hit-testing for erase
//   - Client: gesture handling (draw and erase modes), stroke submission
//     over the WebSocket, and full resynchronization over HTTP
//
// Rendering is delegated to the caller through the Renderer interface; the
// built-in renderer is headless and only supports hit-testing. The local
// view is not authoritative: pushed strokes are appended as they arrive,
// and any delete signal triggers a delayed full snapshot fetch that
// replaces the list wholesale.
package client
