package rdb

import "fmt"

// Quicklist node container markers used by the modern (v2) encoding.
const (
	quicklistContainerPlain  = 1
	quicklistContainerPacked = 2
)

// readQuicklistV1 decodes the legacy quicklist (type tag 14): a
// length-prefixed sequence of nodes, each node itself an RDB string
// holding a ziplist. The logical value is the concatenation of every
// node's entries, in order.
func (d *Decoder) readQuicklistV1() ([][]byte, error) {
	numNodes, _, err := d.readLength()
	if err != nil {
		return nil, err
	}

	var elements [][]byte
	for i := uint64(0); i < numNodes; i++ {
		nodeBytes, err := d.readStringValue()
		if err != nil {
			return elements, fmt.Errorf("quicklist node %d: %w", i, err)
		}
		entries, err := parseZiplist(nodeBytes)
		if err != nil {
			d.warnf(WarnContainerTruncated, "quicklist node %d ziplist truncated: %v", i, err)
		}
		elements = append(elements, entries...)
	}
	return elements, nil
}

// readQuicklistV2 decodes the modern quicklist (type tag 18): each node is
// preceded by a container-type length prefix (1=plain scalar element,
// 2=packed listpack of several elements).
func (d *Decoder) readQuicklistV2() ([][]byte, error) {
	numNodes, _, err := d.readLength()
	if err != nil {
		return nil, err
	}

	var elements [][]byte
	for i := uint64(0); i < numNodes; i++ {
		container, _, err := d.readLength()
		if err != nil {
			return elements, fmt.Errorf("quicklist node %d container type: %w", i, err)
		}

		nodeBytes, err := d.readStringValue()
		if err != nil {
			return elements, fmt.Errorf("quicklist node %d: %w", i, err)
		}

		switch container {
		case quicklistContainerPacked:
			entries, err := parseListpack(nodeBytes)
			if err != nil {
				d.warnf(WarnContainerTruncated, "quicklist node %d listpack truncated: %v", i, err)
			}
			elements = append(elements, entries...)
		case quicklistContainerPlain:
			elements = append(elements, nodeBytes)
		default:
			return elements, newDecodeError(ErrBadEncoding, d.r.Position(), fmt.Errorf("unknown quicklist container type %d", container))
		}
	}
	return elements, nil
}
