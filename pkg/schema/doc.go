// Package schema describes the blocks a strategy can be built from.
//
// A Catalog maps each block kind to an ordered list of menus; each menu offers
// sub-menus, and each sub-menu declares an ordered list of prompts. Declaration order
// is significant: the compiler renders summaries in exactly this order, never in map
// iteration order.
//
// Prompts form a closed set of kinds:
//
//	Select       one option out of a fixed list
//	NumericInput a free numeric value
//	TextInput    a free text value
//	MultiSelect  a set of options out of a fixed list
//
// Catalogs are written in YAML:
//
//	condition:
//	  - menu: Operation 1
//	    subMenus:
//	      - name: RSI
//	        prompts:
//	          - label: "Asset:"
//	            type: select
//	            options: [AAPL, MSFT, GOOGL]
//	          - label: "Look-back Period:"
//	            type: input
//	            inputType: number
//
// Default returns the built-in catalog. A catalog is immutable once loaded.
package schema
