package asset

// DefaultTree is the built-in virtual filesystem
const DefaultTree = `
children:
  - name: home
    children:
      - name: guest
        children:
          - name: readme.txt
            content: |
              Welcome to phosphor.

              Type 'help' for commands, 'cv --help' for the curriculum vitae,
              or try 'snake', 'tetris', 'pong' and 'matrix'.
              'music on' starts the ambient track.
          - name: projects
            children:
              - name: phosphor.md
                content: |
                  phosphor: a CRT terminal in Go.
                  Two render passes: a text grid, then a compositor that
                  curves, scans, blooms, jitters and burns the image in.
              - name: vi-fighter.md
                content: |
                  A terminal action game driven by vi motions.
          - name: notes
            children:
              - name: keys.txt
                content: |
                  Up/Down     history
                  Tab         complete commands and paths
                  Ctrl+L      clear the screen
                  Ctrl+U/K/W  kill to start, to end, previous word
                  q or Esc    leave a game
  - name: etc
    children:
      - name: motd
        content: "phosphor 1.0, ready.\n"
      - name: hostname
        content: "phosphor\n"
  - name: tmp
    children: []
`
