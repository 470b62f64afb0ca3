package vdom

// VNode represents a virtual DOM node.
type VNode struct {
	Tag        string         // The HTML tag name, custom element names included
	Attributes map[string]any // The attributes of the node
	Children   []*VNode       // The child nodes
	Content    string         // The text content of the node
	OnClick    func()         // Optional click event handler
}

// NewVNode creates a new VNode. An "onClick" attribute holding a func() is
// moved to OnClick so it is not rendered as an HTML attribute.
func NewVNode(tag string, attributes map[string]any, children []*VNode, content string) *VNode {
	var onClick func()
	if attributes != nil {
		if v, ok := attributes["onClick"]; ok {
			if f, ok := v.(func()); ok {
				onClick = f
				delete(attributes, "onClick")
			}
		}
	}
	return &VNode{
		Tag:        tag,
		Attributes: attributes,
		Children:   children,
		Content:    content,
		OnClick:    onClick,
	}
}

// Element creates a VNode for an arbitrary tag.
func Element(tag string, attrs map[string]any, children ...*VNode) *VNode {
	return NewVNode(tag, attrs, children, "")
}

// Paragraph creates a <p> VNode with the given text.
func Paragraph(text string, attrs map[string]any) *VNode {
	return NewVNode("p", attrs, nil, text)
}

// Div creates a <div> VNode with the given children.
func Div(attrs map[string]any, children ...*VNode) *VNode {
	return NewVNode("div", attrs, children, "")
}

// Nav creates a <nav> VNode with the given children.
func Nav(attrs map[string]any, children ...*VNode) *VNode {
	return NewVNode("nav", attrs, children, "")
}

// Main creates a <main> VNode with the given children.
func Main(attrs map[string]any, children ...*VNode) *VNode {
	return NewVNode("main", attrs, children, "")
}

// Anchor creates an <a href> VNode. When onClick is set, plain left clicks
// call it instead of following the link; modified clicks (new tab, new
// window) still reach the browser.
func Anchor(href, text string, attrs map[string]any, onClick func()) *VNode {
	if attrs == nil {
		attrs = make(map[string]any)
	}
	attrs["href"] = href
	n := NewVNode("a", attrs, nil, text)
	n.OnClick = onClick
	return n
}

// Find returns the first node in the tree, depth first, for which match
// returns true.
func (v *VNode) Find(match func(*VNode) bool) *VNode {
	if v == nil {
		return nil
	}
	if match(v) {
		return v
	}
	for _, c := range v.Children {
		if found := c.Find(match); found != nil {
			return found
		}
	}
	return nil
}
