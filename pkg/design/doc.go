/*
Package design reads declarative experiment designs and turns them into tables.

A design lists tables; each table is built by a pipeline of steps, each step a
single-key mapping naming a table operation:

	name: stroop
	seed: pilot
	tables:
	  - name: intro
	    steps:
	      - append: [{path: consent}, {path: instructions}]
	  - name: trials
	    schema: {color: string, word: string}
	    steps:
	      - outer: {color: [red, green], word: [RED, GREEN]}
	      - repeat: 2
	      - shuffle: s1
	      - partition: 2
	      - each:
	          - sample: {type: without-replacement, size: 2}

Steps and their arguments:

	append      any value, list or mapping
	range       n, or {n, field}
	repeat      n
	zip         {columns: {...}, method, pad_value}
	outer       {column: values, ...} in declaration order
	interleave  a list or mapping
	partition   n
	shuffle     seed, or null for the design seed
	sample      table.SampleOptions fields; custom sampling names a registered fn
	each        a list of steps applied to every row's nested table

Tables are committed to a sequencer in order by Design.Apply, so applying the same
design twice adds nothing the second time.
*/
package design
