package array

import (
	"fmt"
	"strings"
)

// consts
const (
	ObjectIDDelimiter     = ":"
	ObjectIDPartDelimiter = ";"

	NodeIDDelimiter   = ";"
	NodeIDFCDelimiter = ":"
)

// ObjectIDs is the decoded form of an external volume or snapshot id:
// <array-type>:[<system-id>:]<id> or <array-type>:[<system-id>:]<internal-id>;<id>
type ObjectIDs struct {
	ArrayType  string
	SystemID   string
	InternalID string
	ID         string
}

// NewObjectIDs builds the external id parts of a volume
func NewObjectIDs(arrayType string, systemID string, internalID string, id string) ObjectIDs {
	return ObjectIDs{ArrayType: arrayType, SystemID: systemID, InternalID: internalID, ID: id}
}

func (o ObjectIDs) String() string {
	parts := []string{o.ArrayType}
	if o.SystemID != "" {
		parts = append(parts, o.SystemID)
	}
	if o.InternalID != "" && o.InternalID != o.ID {
		parts = append(parts, o.InternalID+ObjectIDPartDelimiter+o.ID)
	} else {
		parts = append(parts, o.ID)
	}
	return strings.Join(parts, ObjectIDDelimiter)
}

// ParseObjectID decodes an external id. Callers on delete paths treat a
// parse failure as "not found".
func ParseObjectID(objectID string) (ObjectIDs, error) {
	parts := strings.Split(objectID, ObjectIDDelimiter)
	ids := ObjectIDs{}
	switch len(parts) {
	case 2:
		ids.ArrayType = parts[0]
	case 3:
		ids.ArrayType, ids.SystemID = parts[0], parts[1]
		if ids.SystemID == "" {
			return ObjectIDs{}, ErrValidation("wrong object id format %q: empty system id", objectID)
		}
	default:
		return ObjectIDs{}, ErrValidation("wrong object id format %q", objectID)
	}
	if ids.ArrayType == "" {
		return ObjectIDs{}, ErrValidation("wrong object id format %q: empty array type", objectID)
	}

	idPart := parts[len(parts)-1]
	subParts := strings.Split(idPart, ObjectIDPartDelimiter)
	switch len(subParts) {
	case 1:
		ids.ID = subParts[0]
	case 2:
		ids.InternalID, ids.ID = subParts[0], subParts[1]
		if ids.InternalID == "" {
			return ObjectIDs{}, ErrValidation("wrong object id format %q: empty internal id", objectID)
		}
	default:
		return ObjectIDs{}, ErrValidation("wrong object id format %q", objectID)
	}
	if ids.ID == "" {
		return ObjectIDs{}, ErrValidation("wrong object id format %q: empty id", objectID)
	}
	return ids, nil
}

// NodeIDInfo is the decoded form of a CSI node id: <hostname>;<iqn>;<wwn1>:<wwn2>...
type NodeIDInfo struct {
	NodeName   string
	Initiators Initiators
}

// GenerateNodeID encodes a node id from the host name and its initiators
func GenerateNodeID(hostName string, iqn string, wwns []string) string {
	id := hostName + NodeIDDelimiter + iqn
	if len(wwns) > 0 {
		id += NodeIDDelimiter + strings.Join(wwns, NodeIDFCDelimiter)
	}
	return id
}

// ParseNodeID decodes a node id. Either the IQN or the WWN segment may be
// empty but not both.
func ParseNodeID(nodeID string) (NodeIDInfo, error) {
	parts := strings.Split(nodeID, NodeIDDelimiter)
	if len(parts) < 2 || len(parts) > 3 {
		return NodeIDInfo{}, ErrBadNodeID(nodeID)
	}
	hostName := strings.TrimSpace(parts[0])
	if hostName == "" {
		return NodeIDInfo{}, ErrBadNodeID(nodeID)
	}
	var wwns []string
	if len(parts) == 3 && parts[2] != "" {
		wwns = strings.Split(parts[2], NodeIDFCDelimiter)
	}
	initiators := NewInitiators(parts[1], wwns)
	if initiators.ISCSIIQN == "" && len(initiators.FCWWNs) == 0 {
		return NodeIDInfo{}, ErrBadNodeID(nodeID)
	}
	return NodeIDInfo{NodeName: hostName, Initiators: initiators}, nil
}

// String renders the node id back
func (n NodeIDInfo) String() string {
	return fmt.Sprintf("%s%s%s%s%s", n.NodeName, NodeIDDelimiter, n.Initiators.ISCSIIQN, NodeIDDelimiter, strings.Join(n.Initiators.FCWWNs, NodeIDFCDelimiter))
}
