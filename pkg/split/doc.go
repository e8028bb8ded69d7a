// Package split provides the link protocol between the two halves
// of a split keyboard.
package split

// The link is a point-to-point byte stream (e.g. UART) between two halves.
// Each message starts with a head byte:
//
//   0x00 Switches       len, len x identifier
//   0x01 SwitchesReply  len, len x identifier
//   0xfe Acknowledge
//   0xff FindReceiver
//
// The half connected to the host sends FindReceiver and becomes the
// Controller once Acknowledge is received. The other half becomes the
// Receiver. On every scan the Controller sends its pressed switches and
// gets the Receiver's pressed switches in the reply.
//
// There is no checksum or retransmission. Every read is bounded by a
// fixed timeout and a failed exchange is retried on the next scan.
