package diff3

// edit is one contiguous run of disagreement between two line slices:
// lines [ALo,AHi) on the left are replaced by lines [BLo,BHi) on the
// right. ALo == AHi is a pure insertion, BLo == BHi a pure deletion.
// The lines between consecutive edits are common to both sides.
type edit struct {
	ALo, AHi int
	BLo, BHi int
}

// span is a maximal run of identical lines on the optimal path:
// left[ALo:AHi] == right[BLo:BHi].
type span struct {
	ALo, AHi int
	BLo, BHi int
}

// kvec stores furthest-reaching x values indexed by diagonal k, which
// ranges over negative numbers as well.
type kvec struct {
	off int
	at  []int
}

func newKvec(width int) kvec {
	return kvec{off: width, at: make([]int, 2*width+1)}
}

func (v kvec) get(k int) int { return v.at[k+v.off] }
func (v kvec) set(k, x int)  { v.at[k+v.off] = x }

func (v kvec) clone() kvec {
	c := kvec{off: v.off, at: make([]int, len(v.at))}
	copy(c.at, v.at)
	return c
}

// editScript computes the minimal set of edits turning a into b, using
// the greedy forward variant of Myers' algorithm over whole lines. The
// result is ordered by position; equal regions are implied by the gaps
// between edits.
func editScript(a, b []string) []edit {
	n, m := len(a), len(b)
	switch {
	case n == 0 && m == 0:
		return nil
	case n == 0 || m == 0:
		return []edit{{0, n, 0, m}}
	}

	width := n + m
	v := newKvec(width)
	var rounds []kvec // furthest-reaching state after each edit distance

	for d := 0; d <= width; d++ {
		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v.get(k-1) < v.get(k+1)) {
				x = v.get(k + 1) // step down: take a line from b
			} else {
				x = v.get(k-1) + 1 // step right: drop a line from a
			}
			y := x - k

			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v.set(k, x)

			if x >= n && y >= m {
				rounds = append(rounds, v.clone())
				return gapsToEdits(n, m, commonSpans(n, m, rounds, d))
			}
		}
		rounds = append(rounds, v.clone())
	}
	return nil
}

// commonSpans walks the per-distance states backwards from the
// bottom-right corner and returns the identical-line runs of the
// optimal path in document order.
func commonSpans(n, m int, rounds []kvec, dist int) []span {
	x, y := n, m
	var rev []span

	for d := dist; d > 0; d-- {
		k := x - y
		prev := rounds[d-1]

		var pk int
		if k == -d || (k != d && prev.get(k-1) < prev.get(k+1)) {
			pk = k + 1 // this diagonal was entered from below
		} else {
			pk = k - 1 // ... from the left
		}
		px := prev.get(pk)
		py := px - pk

		// One unit step away from (px,py), then a snake up to (x,y).
		mx, my := px, py+1
		if pk == k-1 {
			mx, my = px+1, py
		}
		if x > mx {
			rev = append(rev, span{mx, x, my, y})
		}
		x, y = px, py
	}
	if x > 0 {
		// Leading snake along the main diagonal.
		rev = append(rev, span{0, x, 0, y})
	}

	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}

// gapsToEdits turns the common runs of a path into the edit list:
// every region not covered by a common run is an edit.
func gapsToEdits(n, m int, spans []span) []edit {
	var edits []edit
	ax, bx := 0, 0
	for _, s := range spans {
		if s.ALo > ax || s.BLo > bx {
			edits = append(edits, edit{ax, s.ALo, bx, s.BLo})
		}
		ax, bx = s.AHi, s.BHi
	}
	if ax < n || bx < m {
		edits = append(edits, edit{ax, n, bx, m})
	}
	return edits
}
